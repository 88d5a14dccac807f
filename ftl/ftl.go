// Package ftl is the log-structured flash translation layer. Logical block
// addresses map to physical pages; writes append to a single active block,
// the OOB metadata written with every page is the sole source of truth at
// mount time, and a greedy garbage collector reclaims the least-valid block
// when the free list runs dry.
package ftl

import (
	"encoding/binary"
	"math/bits"

	"github.com/aurelia-systems/aurelia/nand"
)

// LBA and PBA are logical and physical page-granular addresses. A PBA
// encodes block*PagesPerBlock + page.
type (
	LBA = uint32
	PBA = uint32
)

// Magic marks an OOB area as holding a live FTL record.
const Magic uint64 = 0xDEADBEEF

// BlockState tracks each physical block through its lifecycle.
type BlockState uint8

const (
	BlockFree BlockState = iota
	BlockActive
	BlockFull
	BlockBad
)

// BlockInfo is the per-physical-block bookkeeping record.
type BlockInfo struct {
	State BlockState
	// EraseCount is exposed for wear observation; GC itself is purely
	// greedy.
	EraseCount uint32
	// ValidPages has one bit per page; a set bit means the page is the
	// current location of its LBA.
	ValidPages uint64
}

const noActive = -1

// FTL mediates between page-sized logical writes and the program/erase
// constraints of the chip underneath.
type FTL struct {
	chip *nand.Chip

	l2p    map[LBA]PBA
	blocks []BlockInfo
	free   []int

	active  int // noActive when no write frontier is open
	pageOff int
}

// Mount scans the chip, rebuilds the mapping table from OOB metadata and
// resumes the write frontier if an in-progress block is found.
func Mount(chip *nand.Chip) *FTL {
	f := &FTL{
		chip:   chip,
		l2p:    make(map[LBA]PBA),
		blocks: make([]BlockInfo, chip.Blocks()),
		active: noActive,
	}
	f.scan()

	if f.active == noActive && len(f.free) > 0 {
		f.allocActive()
	}
	return f
}

type oobRecord struct {
	magic uint64
	lba   LBA
}

func putOOB(oob []byte, rec oobRecord) {
	binary.LittleEndian.PutUint64(oob[0:8], rec.magic)
	binary.LittleEndian.PutUint32(oob[8:12], rec.lba)
}

func getOOB(oob []byte) oobRecord {
	return oobRecord{
		magic: binary.LittleEndian.Uint64(oob[0:8]),
		lba:   binary.LittleEndian.Uint32(oob[8:12]),
	}
}

// scan walks blocks in ascending index order and pages in ascending order,
// and the last record seen for an LBA wins, so a record in a higher block
// replaces one in a lower block. The free list is reversed afterwards so
// that, popped from the back, it hands out ascending indices
// deterministically. Within a used block the first un-programmed page
// marks the resumable write frontier.
func (f *FTL) scan() {
	data := make([]byte, nand.PageDataSize)
	oob := make([]byte, nand.OOBSize)

	f.free = f.free[:0]
	f.l2p = make(map[LBA]PBA)

	for b := 0; b < f.chip.Blocks(); b++ {
		if err := f.chip.ReadPage(b, 0, data, oob); err != nil {
			f.blocks[b].State = BlockBad
			continue
		}

		if getOOB(oob).magic != Magic {
			f.blocks[b].State = BlockFree
			f.free = append(f.free, b)
			continue
		}

		f.adopt(b, 0, getOOB(oob).lba)

		frontier := false
		for p := 1; p < nand.PagesPerBlock; p++ {
			if err := f.chip.ReadPage(b, p, data, oob); err != nil {
				break
			}
			rec := getOOB(oob)
			if rec.magic != Magic {
				// erased page inside a used block: the write
				// frontier left off here
				f.active = b
				f.pageOff = p
				f.blocks[b].State = BlockActive
				frontier = true
				break
			}
			f.adopt(b, p, rec.lba)
		}
		if !frontier {
			f.blocks[b].State = BlockFull
		}
	}
	for i, j := 0, len(f.free)-1; i < j; i, j = i+1, j-1 {
		f.free[i], f.free[j] = f.free[j], f.free[i]
	}
}

// adopt records a scanned page into the map, moving the LBA's valid bit off
// whichever page held it before.
func (f *FTL) adopt(blockIdx, pageIdx int, lba LBA) {
	if old, ok := f.l2p[lba]; ok {
		f.blocks[old/nand.PagesPerBlock].ValidPages &^= 1 << (old % nand.PagesPerBlock)
	}
	f.l2p[lba] = PBA(blockIdx*nand.PagesPerBlock + pageIdx)
	f.blocks[blockIdx].ValidPages |= 1 << pageIdx
}

// BlockInfo returns the bookkeeping record for one physical block.
func (f *FTL) BlockInfo(blockIdx int) BlockInfo {
	return f.blocks[blockIdx]
}

// FreeBlocks returns the current free-list depth.
func (f *FTL) FreeBlocks() int {
	return len(f.free)
}

func (f *FTL) allocActive() bool {
	if len(f.free) == 0 {
		if !f.collect() {
			return false
		}
		if f.active != noActive {
			// survivor copy-back already opened a new frontier
			return true
		}
		// GC may succeed yet immediately consume the freed block for
		// survivor copy-back.
		if len(f.free) == 0 {
			return false
		}
	}

	b := f.free[len(f.free)-1]
	f.free = f.free[:len(f.free)-1]

	f.blocks[b].State = BlockActive
	f.blocks[b].ValidPages = 0
	f.active = b
	f.pageOff = 0
	return true
}

// Write stores one page of data at lba. The current mapping (if any) is
// invalidated, the page is programmed at the active block's frontier with
// its OOB record, and the map is updated on success.
func (f *FTL) Write(lba LBA, data []byte) error {
	if len(data) != nand.PageDataSize {
		return nand.ErrWrite
	}

	oob := make([]byte, nand.OOBSize)
	for i := range oob {
		oob[i] = 0xFF
	}
	putOOB(oob, oobRecord{magic: Magic, lba: lba})

	if old, ok := f.l2p[lba]; ok {
		f.blocks[old/nand.PagesPerBlock].ValidPages &^= 1 << (old % nand.PagesPerBlock)
	}

	if f.active == noActive {
		if !f.allocActive() {
			return nand.ErrWrite
		}
	}

	if err := f.chip.ProgramPage(f.active, f.pageOff, data, oob); err != nil {
		return err
	}

	f.l2p[lba] = PBA(f.active*nand.PagesPerBlock + f.pageOff)
	f.blocks[f.active].ValidPages |= 1 << f.pageOff

	f.pageOff++
	if f.pageOff >= nand.PagesPerBlock {
		f.blocks[f.active].State = BlockFull
		f.active = noActive
	}
	return nil
}

// Read fills buf with the page mapped at lba. An unmapped LBA reads as
// erased flash: all 0xFF, successfully.
func (f *FTL) Read(lba LBA, buf []byte) error {
	pba, ok := f.l2p[lba]
	if !ok {
		for i := range buf {
			buf[i] = 0xFF
		}
		return nil
	}
	return f.chip.ReadPage(int(pba/nand.PagesPerBlock), int(pba%nand.PagesPerBlock), buf, nil)
}

type survivor struct {
	lba  LBA
	data []byte
}

// collect runs one round of greedy garbage collection: pick the non-free,
// non-bad block (excluding the active one) with the fewest valid pages,
// copy its live pages out, erase it, and rewrite the survivors through the
// normal log path.
func (f *FTL) collect() bool {
	victim := -1
	minValid := nand.PagesPerBlock + 1

	for b := range f.blocks {
		if b == f.active {
			continue
		}
		st := f.blocks[b].State
		if st == BlockFree || st == BlockBad {
			continue
		}
		if n := bits.OnesCount64(f.blocks[b].ValidPages); n < minValid {
			minValid = n
			victim = b
		}
	}
	if victim < 0 {
		return false
	}

	var live []survivor
	data := make([]byte, nand.PageDataSize)
	oob := make([]byte, nand.OOBSize)
	for p := 0; p < nand.PagesPerBlock; p++ {
		if f.blocks[victim].ValidPages&(1<<p) == 0 {
			continue
		}
		if err := f.chip.ReadPage(victim, p, data, oob); err != nil {
			continue
		}
		rec := getOOB(oob)
		// Only pages the map still points at survive; a stale
		// self-mapping means the LBA moved on.
		if pba, ok := f.l2p[rec.lba]; ok && pba == PBA(victim*nand.PagesPerBlock+p) {
			cp := make([]byte, nand.PageDataSize)
			copy(cp, data)
			live = append(live, survivor{lba: rec.lba, data: cp})
		}
	}

	if err := f.chip.EraseBlock(victim); err != nil {
		f.blocks[victim].State = BlockBad
		return false
	}
	f.blocks[victim].State = BlockFree
	f.blocks[victim].ValidPages = 0
	f.blocks[victim].EraseCount++
	f.free = append(f.free, victim)

	for _, s := range live {
		if err := f.Write(s.lba, s.data); err != nil {
			return false
		}
	}
	return true
}
