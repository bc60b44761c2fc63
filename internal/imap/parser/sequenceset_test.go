package parser

import (
	"reflect"
	"testing"
)

func TestParseSequenceSet_SingleUID(t *testing.T) {
	got := ParseSequenceSet("101", []uint32{100, 101, 102})
	want := []uint32{101}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSequenceSet_Range(t *testing.T) {
	got := ParseSequenceSet("100:101", []uint32{100, 101, 102})
	want := []uint32{100, 101}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSequenceSet_ReversedRangeSwaps(t *testing.T) {
	got := ParseSequenceSet("102:100", []uint32{100, 101, 102})
	want := []uint32{100, 101, 102}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSequenceSet_StarIsLastUID(t *testing.T) {
	got := ParseSequenceSet("101:*", []uint32{100, 101, 102})
	want := []uint32{101, 102}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSequenceSet_CommaListDeduplicates(t *testing.T) {
	got := ParseSequenceSet("100,100,101", []uint32{100, 101, 102})
	want := []uint32{100, 101}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSequenceSet_EmptyUniverse(t *testing.T) {
	if got := ParseSequenceSet("1:*", nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestParseSeqNumSet_RangeResolvesToUIDs(t *testing.T) {
	got := ParseSeqNumSet("1:2", []uint32{100, 101, 102})
	want := []uint32{100, 101}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSeqNumSet_StarIsLastSequence(t *testing.T) {
	got := ParseSeqNumSet("*", []uint32{100, 101, 102})
	want := []uint32{102}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseSeqNumSet_OutOfRangeIgnored(t *testing.T) {
	got := ParseSeqNumSet("5", []uint32{100, 101, 102})
	if got != nil {
		t.Errorf("expected nil for out-of-range sequence number, got %v", got)
	}
}
