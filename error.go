package ndecor

import (
	"errors"
	"sync"
)

// detailer is implemented by errors that carry a long-form explanation
// beyond their one-line Error() string.  The generator's configuration
// errors implement it.
type detailer interface {
	error
	Details() string
}

// DetailedError transforms errors into strings.  If the error carries
// extra detail (configuration errors from code generation do) then the
// returned string includes the detail after the one-line message.  Other
// errors come back as err.Error().
func DetailedError(err error) string {
	var d detailer
	if errors.As(err, &d) {
		if dups := duplicateDisplays(); dups != "" {
			return err.Error() + "\n\n" + d.Details() +
				"\n\nWarning: the following type names refer to more than one type:" +
				dups
		}
		return err.Error() + "\n\n" + d.Details()
	}
	return err.Error()
}

var (
	dupLock         sync.Mutex
	displaySeen     = make(map[string]string)
	duplicates      string
	duplicatesFound = make(map[string]struct{})
)

// noteDisplay records the rendered name of a definition so that
// DetailedError can warn when two different definitions render the same.
// Short package qualifiers collapse paths, so "a/repos.Repo" and
// "b/repos.Repo" both print as "repos.Repo"; an error message naming that
// type would otherwise be quietly ambiguous.
func noteDisplay(d TypeDef) {
	if d.IsZero() {
		return
	}
	display := d.String()
	dupLock.Lock()
	defer dupLock.Unlock()
	if prior, ok := displaySeen[display]; ok {
		if prior != d.key() {
			if _, ok := duplicatesFound[display]; !ok {
				duplicates += " " + display
				duplicatesFound[display] = struct{}{}
			}
		}
		return
	}
	displaySeen[display] = d.key()
}

func duplicateDisplays() string {
	dupLock.Lock()
	defer dupLock.Unlock()
	return duplicates
}
