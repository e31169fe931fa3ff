package protocol

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a negotiated protocol version. Versions compare as the
// decimal number major.minor, so 2.30 is newer than 2.28 but older than 2.5,
// and 2.3 equals 2.30.
type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

// Well-known protocol versions that change record layouts.
var (
	Version7   = Version{Major: 2, Minor: 0}
	Version8   = Version{Major: 2, Minor: 28}
	Version811 = Version{Major: 2, Minor: 30}
)

// IsZero reports whether no version has been set.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	return cmp.Compare(fraction(v.Minor), fraction(o.Minor))
}

// fraction scales a minor number to the five decimal places a uint16 can
// fill, so 5 and 50 both become 50000.
func fraction(minor uint16) uint32 {
	f := uint32(minor)
	for digits := len(strconv.Itoa(int(minor))); digits < 5; digits++ {
		f *= 10
	}
	return f
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseVersion parses a "major.minor" string.
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}
	ma, err := strconv.ParseUint(major, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version %q: %w", major, err)
	}
	mi, err := strconv.ParseUint(minor, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version %q: %w", minor, err)
	}
	return Version{Major: uint16(ma), Minor: uint16(mi)}, nil
}
