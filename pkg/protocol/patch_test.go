package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestPatchesRoundTrip(t *testing.T) {
	pf := &PatchesFrame{
		Seq: 42,
		Patches: []Patch{
			NewMoveNodePatch("card", "body", ""),
			NewSetStylePatch("card", "z-index", "9999"),
			NewSetStylePatch("card", "position", "absolute"),
			NewRemoveStylePatch("card", "left"),
			NewSetHiddenPatch("card", true),
			NewSetHiddenPatch("card", false),
			NewMoveNodePatch("card", "list", "next"),
			NewRemoveNodePatch("ghost"),
		},
	}

	data, err := EncodePatches(pf)
	if err != nil {
		t.Fatalf("EncodePatches: %v", err)
	}
	got, err := DecodePatches(data)
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	if !reflect.DeepEqual(got, pf) {
		t.Errorf("DecodePatches = %+v, want %+v", got, pf)
	}
}

func TestPatchesEmpty(t *testing.T) {
	data, err := EncodePatches(&PatchesFrame{Seq: 1})
	if err != nil {
		t.Fatalf("EncodePatches: %v", err)
	}
	got, err := DecodePatches(data)
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	if got.Seq != 1 || len(got.Patches) != 0 {
		t.Errorf("DecodePatches = %+v", got)
	}
}

func TestPatchesErrors(t *testing.T) {
	if _, err := EncodePatches(&PatchesFrame{Patches: []Patch{{Op: 0x7F}}}); !errors.Is(err, ErrUnknownPatch) {
		t.Errorf("EncodePatches unknown op err = %v", err)
	}

	// seq=0, count=1, op=0x7F, empty target
	if _, err := DecodePatches([]byte{0, 1, 0x7F, 0}); !errors.Is(err, ErrUnknownPatch) {
		t.Errorf("DecodePatches unknown op err = %v", err)
	}

	// Count far larger than the remaining bytes.
	e := NewEncoder()
	e.WriteUvarint(0)
	e.WriteUvarint(5000)
	if _, err := DecodePatches(e.Bytes()); err == nil {
		t.Error("DecodePatches accepted impossible count")
	}
}

func TestErrorMessageRoundTrip(t *testing.T) {
	for _, em := range []*ErrorMessage{
		NewError(ErrInvalidEvent, "bad pointer payload"),
		NewFatalError(ErrMessageTooLarge, ""),
	} {
		got, err := DecodeErrorMessage(EncodeErrorMessage(em))
		if err != nil {
			t.Fatalf("DecodeErrorMessage: %v", err)
		}
		if *got != *em {
			t.Errorf("DecodeErrorMessage = %+v, want %+v", got, em)
		}
	}

	if got := NewError(ErrRateLimited, "slow down").Error(); got != "RateLimited: slow down" {
		t.Errorf("Error() = %q", got)
	}
}
