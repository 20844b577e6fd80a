// Copyright 2026 The AXIS Harness authors. All Rights Reserved.
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

package sim

// Simulated address map
const (
	DDRBase = 0x1000_0000
	DDRSize = 1 << 20

	DMABase = 0x4040_0000
	AESBase = 0x43c0_0000
)

// Board bundles the simulated memory and programmable logic.
type Board struct {
	Memory *Memory
	Fabric *Fabric
}

// NewBoard returns a simulated board with the given core behaviour.
func NewBoard(opt Options) *Board {
	mem := NewMemory(DDRBase, DDRSize)

	return &Board{
		Memory: mem,
		Fabric: NewFabric(mem, opt),
	}
}
