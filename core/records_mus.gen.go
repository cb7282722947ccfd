// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slicenQX2ΣecXUWLxuazY9Pjk8wΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var ModalityMUS = modalityMUS{}

type modalityMUS struct{}

func (s modalityMUS) Marshal(v Modality, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s modalityMUS) Unmarshal(bs []byte) (v Modality, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Modality(tmp)
	return
}

func (s modalityMUS) Size(v Modality) (size int) {
	return ord.String.Size(string(v))
}

func (s modalityMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var CachedVectorMUS = cachedVectorMUS{}

type cachedVectorMUS struct{}

func (s cachedVectorMUS) Marshal(v CachedVector, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Collection, bs[n:])
	n += ord.String.Marshal(v.RecordID, bs[n:])
	n += ModalityMUS.Marshal(v.Modality, bs[n:])
	n += slicenQX2ΣecXUWLxuazY9Pjk8wΞΞ.Marshal(v.Vector, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.CreatedAt, bs[n:])
}

func (s cachedVectorMUS) Unmarshal(bs []byte) (v CachedVector, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Collection, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RecordID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Modality, n1, err = ModalityMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicenQX2ΣecXUWLxuazY9Pjk8wΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s cachedVectorMUS) Size(v CachedVector) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Collection)
	size += ord.String.Size(v.RecordID)
	size += ModalityMUS.Size(v.Modality)
	size += slicenQX2ΣecXUWLxuazY9Pjk8wΞΞ.Size(v.Vector)
	return size + raw.TimeUnixMicro.Size(v.CreatedAt)
}

func (s cachedVectorMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ModalityMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicenQX2ΣecXUWLxuazY9Pjk8wΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
