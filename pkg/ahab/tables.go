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

package ahab

import "ahab/internal/ahab/numeric"

// newDivisionTable builds an approximate-division table. New builds one for
// the per-packet drop-probability stage, which always uses it; the
// table-based threshold interpolator, when configured, builds its own.
func newDivisionTable(ratioBits, mantissaBits uint) *numeric.DivisionTable {
	return numeric.NewDivisionTable(ratioBits, mantissaBits)
}
