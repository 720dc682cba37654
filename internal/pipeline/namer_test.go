package pipeline

import (
	"crypto/sha512"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]{10}$`)

func TestHashedName_Deterministic(t *testing.T) {
	a := HashedName("/recordings/meeting.m4a")
	b := HashedName("/recordings/meeting.m4a")
	assert.Equal(t, a, b)
	assert.Regexp(t, urlSafe, a)
}

func TestHashedName_MatchesDigest(t *testing.T) {
	sum := sha512.Sum512([]byte("talk.wav"))
	want := base64.URLEncoding.EncodeToString(sum[:])[:10]
	assert.Equal(t, want, HashedName("talk.wav"))
}

func TestHashedName_Distinct(t *testing.T) {
	seen := make(map[string]string)
	for _, p := range []string{"a.wav", "b.wav", "a.wav ", "/a.wav", "dir/a.wav", ""} {
		name := HashedName(p)
		if other, ok := seen[name]; ok {
			t.Fatalf("collision between %q and %q", p, other)
		}
		seen[name] = p
	}
}
