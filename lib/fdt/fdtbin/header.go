// Package fdtbin implements the DTB (Device Tree Blob) binary codec:
// the fixed header, the memory-reservation block, the structure
// block's token stream, and the interned strings block.
package fdtbin

import "github.com/dtng/devicetree/lib/binstruct"

const (
	magic            = 0xd00dfeed
	fdtVersion       = 17
	fdtLastCompVersion = 16

	tokenBeginNode uint32 = 1
	tokenEndNode   uint32 = 2
	tokenProp      uint32 = 3
	tokenNop       uint32 = 4
	tokenEnd       uint32 = 9

	headerSize = 40
)

// header is the DTB's fixed 40-byte preamble, laid out exactly as the
// on-disk format requires; every field is big-endian per the format.
type header struct {
	Magic           binstruct.U32be `bin:"off=0,siz=4"`
	TotalSize       binstruct.U32be `bin:"off=4,siz=4"`
	OffDtStruct     binstruct.U32be `bin:"off=8,siz=4"`
	OffDtStrings    binstruct.U32be `bin:"off=12,siz=4"`
	OffMemRsvmap    binstruct.U32be `bin:"off=16,siz=4"`
	Version         binstruct.U32be `bin:"off=20,siz=4"`
	LastCompVersion binstruct.U32be `bin:"off=24,siz=4"`
	BootCpuidPhys   binstruct.U32be `bin:"off=28,siz=4"`
	SizeDtStrings   binstruct.U32be `bin:"off=32,siz=4"`
	SizeDtStruct    binstruct.U32be `bin:"off=36,siz=4"`
	binstruct.End   `bin:"off=40"`
}
