package ndecor

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type detailedFailure struct {
	msg     string
	details string
}

func (d *detailedFailure) Error() string   { return d.msg }
func (d *detailedFailure) Details() string { return d.details }

func TestDetailedErrorPlain(t *testing.T) {
	err := fmt.Errorf("nothing fancy")
	assert.Equal(t, "nothing fancy", DetailedError(err))
}

func TestDetailedErrorWithDetails(t *testing.T) {
	err := &detailedFailure{msg: "composition failed", details: "candidate dropped: disabled"}
	got := DetailedError(err)
	assert.Contains(t, got, "composition failed")
	assert.Contains(t, got, "candidate dropped: disabled")
}

func TestDetailedErrorUnwraps(t *testing.T) {
	inner := &detailedFailure{msg: "composition failed", details: "the long story"}
	wrapped := errors.Wrap(inner, "generating units")
	got := DetailedError(wrapped)
	assert.Contains(t, got, "generating units")
	assert.Contains(t, got, "the long story")
}

func TestDetailedErrorWarnsOnAmbiguousNames(t *testing.T) {
	// Same short rendering, different packages.  Once a store has seen
	// both, detailed errors warn that the name is ambiguous.
	NewStore(
		Decorate(Def("", "first/pkg", "Ambiguous"), loggingDeco, 1),
		Decorate(Def("", "second/pkg", "Ambiguous"), loggingDeco, 1),
	)
	err := &detailedFailure{msg: "boom", details: "details"}
	got := DetailedError(err)
	assert.Contains(t, got, "refer to more than one type")
	assert.Contains(t, got, "pkg.Ambiguous")
}
