package pokemon

// PatchPageSize is the paging unit used when 1-based patch offsets exceed a
// single page: positions >= PatchPageSize are recorded relative to the next
// page, with a 0xFF separator between pages (§3.1 "Patch Set", §4.5 "Patch
// encoding").
const PatchPageSize = 0xFC

const patchListTerminator = uint8(0xFF)

// PatchList is a side-channel list of 1-based offsets into a section buffer
// where the wire protocol replaced 0xFE with 0xFF, terminated by 0xFF. Its
// length is generation/section specific (§6.1); callers size the backing
// slice themselves via NewPatchList.
type PatchList []uint8

// NewPatchList allocates a patch list of the given wire length, pre-seeded
// with the "empty" terminator sequence (mirrors the teacher's
// NewPatchListData: a lone terminator is a valid empty list, and a second
// leading terminator covers the empty page-zero + page-one case).
func NewPatchList(length int) PatchList {
	pl := make(PatchList, length)

	for i := range pl {
		pl[i] = patchListTerminator
	}

	return pl
}

// PatchIndex is a singly linked list of 0-based section-buffer offsets
// recorded by a patch set, in ascending order. Only the wire form
// (PatchList) is 1-based.
type PatchIndex struct {
	index int
	next  *PatchIndex
}

// Parse decodes a wire-format PatchList into an ordered *PatchIndex chain
// of absolute offsets. A first 0xFF terminates page zero and advances the
// base to PatchPageSize; a second (or any subsequent) 0xFF ends the list.
func (p PatchList) Parse() *PatchIndex {
	var root, current *PatchIndex

	base := 0

	for _, relative := range p {
		if relative == patchListTerminator {
			if base == 0 {
				base = PatchPageSize
				continue
			}

			break
		}

		idx := base + int(relative) - 1

		node := &PatchIndex{index: idx}

		if root == nil {
			root = node
		} else {
			current.next = node
		}

		current = node
	}

	return root
}

// Marshal encodes the chain back into a wire-format PatchList of the given
// length, restoring 0xFC paging.
func (p *PatchIndex) Marshal(length int) PatchList {
	res := NewPatchList(length)

	current := p
	base := 0
	idx := 0

	for idx < length {
		if current == nil {
			res[idx] = patchListTerminator
			idx++

			if base == 0 && idx < length {
				res[idx] = patchListTerminator
			}

			break
		}

		if base == 0 && current.index >= PatchPageSize {
			base = PatchPageSize
			res[idx] = patchListTerminator
			idx++

			if idx >= length {
				break
			}
		}

		res[idx] = uint8(current.index - base + 1)
		current = current.next
		idx++
	}

	return res
}

// CreatePatches scans buf for 0xFE bytes, rewrites them to 0xFF in place
// (the wire never carries a literal 0xFE, §3.1), and returns the ordered
// offset chain recording where the substitution happened. offsetBase is
// added to every recorded index (Pokémon and mail patch sets share the
// primitive with different base positions, §4.5).
func CreatePatches(buf []uint8, offsetBase int) *PatchIndex {
	var root, current *PatchIndex

	for i, v := range buf {
		if v != 0xFE {
			continue
		}

		buf[i] = 0xFF

		node := &PatchIndex{index: offsetBase + i}

		if root == nil {
			root = node
		} else {
			current.next = node
		}

		current = node
	}

	return root
}

// RestorePatches reverses CreatePatches: every recorded offset (relative to
// offsetBase, 0-based) is rewritten from 0xFF back to 0xFE. Restoration is
// deterministic — RestorePatches(buf, CreatePatches(buf', ...)) and
// RestorePatches(buf, CreatePatches(buf', ...).Marshal(n).Parse()) both
// recover buf' bit for bit (§8.1 invariant 1).
func RestorePatches(buf []uint8, list *PatchIndex, offsetBase int) {
	for n := list; n != nil; n = n.next {
		i := n.index - offsetBase

		if i < 0 || i >= len(buf) {
			continue
		}

		buf[i] = 0xFE
	}
}

// MarshalPatched runs CreatePatches over buf and returns the wire-format
// PatchList of the requested length in one step.
func MarshalPatched(buf []uint8, offsetBase, listLength int) PatchList {
	pi := CreatePatches(buf, offsetBase)

	if pi == nil {
		return NewPatchList(listLength)
	}

	return pi.Marshal(listLength)
}
