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

import (
	"crypto/aes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/axis-aes/harness/axidma"
	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/cipherip"
	"github.com/axis-aes/harness/poll"
	"github.com/axis-aes/harness/transfer"
)

var (
	fipsKey = block.MustParseHex("000102030405060708090a0b0c0d0e0f")
	fipsPT  = block.MustParseHex("00112233445566778899aabbccddeeff")
	fipsCT  = block.MustParseHex("69c4e0d86a7b0430d8cdb78070b4c55a")
)

func encrypt(t *testing.T, key, pt block.Block) (ct block.Block) {
	t.Helper()
	c, err := aes.NewCipher(key[:])
	if err != nil {
		t.Fatal(err)
	}
	c.Encrypt(ct[:], pt[:])
	return
}

type rig struct {
	board *Board
	dma   *axidma.DMA
	core  *cipherip.Core
	out   uint
	in    uint
}

func newRig(t *testing.T, opt Options, key block.Block, pt []block.Block) *rig {
	t.Helper()

	r := &rig{board: NewBoard(opt)}
	r.dma = &axidma.DMA{Bus: r.board.Fabric.DMA(), Config: axidma.Config{MaxLength: 1 << 14, DataWidth: 16}}
	r.core = &cipherip.Core{Bus: r.board.Fabric.AES(), Policy: poll.Policy{MaxPolls: 100}}
	r.dma.Policy = poll.Policy{MaxPolls: 100}

	if err := r.dma.Init(); err != nil {
		t.Fatalf("Init(): %v", err)
	}

	if err := r.core.LoadKey(key); err != nil {
		t.Fatalf("LoadKey(): %v", err)
	}

	var buf []byte

	r.out, buf = r.board.Memory.Reserve(len(pt)*block.Size, 64)
	copy(buf, block.Join(pt))
	r.board.Memory.Flush(r.out, len(buf))

	r.in, _ = r.board.Memory.Reserve(len(pt)*block.Size, 64)

	return r
}

func (r *rig) run(t *testing.T, n int, policy poll.Policy) ([]block.Block, error) {
	t.Helper()

	if err := r.dma.Start(transfer.FromDevice, r.in, n); err != nil {
		t.Fatalf("Start(S2MM): %v", err)
	}

	if err := r.dma.Start(transfer.ToDevice, r.out, n); err != nil {
		t.Fatalf("Start(MM2S): %v", err)
	}

	for _, dir := range []transfer.Direction{transfer.ToDevice, transfer.FromDevice} {
		if _, err := poll.Until(func() bool { return !r.dma.Busy(dir) }, policy); err != nil {
			return nil, err
		}
	}

	got := make([]byte, n)
	if err := r.board.Memory.DeviceRead(r.in, got); err != nil {
		t.Fatalf("DeviceRead(): %v", err)
	}

	return block.Split(got)
}

func TestFabricFIPS197(t *testing.T) {
	r := newRig(t, DefaultOptions, fipsKey, []block.Block{fipsPT})

	got, err := r.run(t, block.Size, poll.Policy{MaxPolls: 100})
	if err != nil {
		t.Fatalf("run(): %v", err)
	}

	if got[0] != fipsCT {
		t.Fatalf("Got %s, want %s", got[0], fipsCT)
	}

	if diff := cmp.Diff([]string{"S2MM", "MM2S"}, r.board.Fabric.Armed); diff != "" {
		t.Fatalf("Armed diff: %s", diff)
	}
}

func TestFabricMultiBlock(t *testing.T) {
	pt := block.Repeat(fipsPT, 4)
	r := newRig(t, DefaultOptions, fipsKey, pt)

	got, err := r.run(t, 4*block.Size, poll.Policy{MaxPolls: 100})
	if err != nil {
		t.Fatalf("run(): %v", err)
	}

	if diff := cmp.Diff(block.Repeat(fipsCT, 4), got); diff != "" {
		t.Fatalf("Got diff: %s", diff)
	}

	if r.board.Fabric.Blocks != 4 {
		t.Fatalf("Blocks = %d, want 4", r.board.Fabric.Blocks)
	}

	if r.board.Fabric.Backpressure == 0 {
		t.Fatal("no backpressure observed with an iterative core")
	}
}

func TestFabricFaults(t *testing.T) {
	zeroCT := encrypt(t, block.Zero, block.Zero)
	ffCT := encrypt(t, block.Zero, block.Fill(0xff))

	for _, test := range []struct {
		name string
		opt  Options
		pt   block.Block
		want func(got block.Block) bool
	}{
		{
			name: "reverse output",
			opt:  Options{ReverseOutput: true, Latency: 1, Depth: 1},
			pt:   block.Zero,
			want: func(got block.Block) bool { return got == zeroCT.Reverse() },
		}, {
			name: "zero only passes zero",
			opt:  Options{ZeroOnly: true, Latency: 1, Depth: 1},
			pt:   block.Zero,
			want: func(got block.Block) bool { return got == zeroCT },
		}, {
			name: "zero only corrupts non-zero",
			opt:  Options{ZeroOnly: true, Latency: 1, Depth: 1},
			pt:   block.Fill(0xff),
			want: func(got block.Block) bool { return got != ffCT && !got.IsZero() },
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := newRig(t, test.opt, block.Zero, []block.Block{test.pt})

			got, err := r.run(t, block.Size, poll.Policy{MaxPolls: 100})
			if err != nil {
				t.Fatalf("run(): %v", err)
			}

			if !test.want(got[0]) {
				t.Fatalf("unexpected output %s", got[0])
			}
		})
	}
}

func TestFabricStall(t *testing.T) {
	opt := DefaultOptions
	opt.Stall = true

	r := newRig(t, opt, block.Zero, block.Repeat(block.Zero, 4))

	if _, err := r.run(t, 4*block.Size, poll.Policy{MaxPolls: 1000}); !errors.Is(err, poll.ErrTimeoutExceeded) {
		t.Fatalf("Got %v, want %v", err, poll.ErrTimeoutExceeded)
	}
}

func TestFabricPartialBlock(t *testing.T) {
	r := newRig(t, DefaultOptions, block.Zero, []block.Block{block.Zero, block.Zero})

	if err := r.dma.Start(transfer.FromDevice, r.in, 24); err != nil {
		t.Fatalf("Start(): %v", err)
	}

	if err := r.dma.Err(transfer.FromDevice); err == nil {
		t.Fatal("partial block transfer accepted")
	}
}
