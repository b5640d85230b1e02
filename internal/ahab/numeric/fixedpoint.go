// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package numeric

// BytesAccepted returns the portion of size admitted when a flow is
// estimated at rate r and capped at limit: size in full if limit >= r,
// otherwise floor(size * limit / r). rate == 0 means no pressure observed
// yet; treat as fully admitted.
func BytesAccepted(rate, limit, size uint64) uint64 {
	if rate == 0 || limit >= rate {
		return size
	}
	return (size * limit) / rate
}

// BytesAcceptedTable is the table-driven evaluation of BytesAccepted:
// normalize rate and limit to p-bit (num, den) buckets, look the quotient up
// in div, then multiply by size and shift. Produces the same admitted-byte
// count as BytesAccepted up to the table's rounding error, exercising the
// DivisionTable instead of a native divide.
func BytesAcceptedTable(div *DivisionTable, rate, limit, size uint64) uint64 {
	if rate == 0 || limit >= rate {
		return size
	}
	mantissa, exponent := div.DivideScaled(limit, rate)
	return ScaleByExponent(size, mantissa, exponent)
}
