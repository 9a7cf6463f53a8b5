package protoemit

import (
	"hash/fnv"
	"sort"

	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	maxTag           = 31767
	reservedTagStart = 19000
	reservedTagEnd   = 19999
)

func allocateFieldNumbers(fields []*protobuilder.FieldBuilder) {
	names := make([]string, len(fields))
	for i, fb := range fields {
		names[i] = string(fb.Name())
	}
	for i, n := range tagNumbers(names) {
		fields[i].SetNumber(protoreflect.FieldNumber(n))
	}
}

func allocateEnumValueNumbers(values []*protobuilder.EnumValueBuilder) {
	names := make([]string, len(values))
	for i, evb := range values {
		names[i] = string(evb.Name())
	}
	for i, n := range tagNumbers(names) {
		values[i].SetNumber(protoreflect.EnumNumber(n))
	}
}

// tagNumbers derives a stable number for each name from its FNV-32a hash,
// in 1..maxTag. The reserved block is skipped and collisions probe linearly.
// Names are visited in sorted order so the outcome does not depend on
// declaration order.
func tagNumbers(names []string) []int {
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return names[order[a]] < names[order[b]] })

	out := make([]int, len(names))
	used := make(map[int]bool, len(names))
	for _, idx := range order {
		tag := int(fnv32(names[idx])%maxTag) + 1
		for used[tag] || (tag >= reservedTagStart && tag <= reservedTagEnd) {
			tag++
			if tag >= reservedTagStart && tag <= reservedTagEnd {
				tag = reservedTagEnd + 1
			}
			if tag > maxTag {
				tag = 1
			}
		}
		used[tag] = true
		out[idx] = tag
	}
	return out
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
