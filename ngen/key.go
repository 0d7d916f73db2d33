package ngen

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/muir/ndecor"
)

// keyNamespace scopes derived keys so they cannot collide with v5 UUIDs
// minted by anyone else from the same names.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ndecor"))

// InternalKey derives the indirection key for a service/implementation
// pair.  The key is a name-based UUID: the same pair produces the same key
// in every process and on every run, so regenerating code never churns
// keys, while distinct pairs get distinct keys.  The "ndecor:" prefix keeps
// the key recognizable in container dumps.
func InternalKey(service ndecor.TypeRef, impl ndecor.TypeRef) string {
	id := uuid.NewSHA1(keyNamespace, []byte(service.Key()+"\x00"+impl.Key()))
	return "ndecor:" + id.String()
}

// siteSuffix returns a short stable fingerprint of a site token, used to
// keep generated function names unique across registrations of the same
// implementation.
func siteSuffix(site string) string {
	sum := sha256.Sum256([]byte(site))
	return hex.EncodeToString(sum[:])[:8]
}

// funcName builds the generated composition function's name from the
// implementation reference and the site token: decorate<Impl><Args>_<site
// fingerprint>.
func funcName(impl ndecor.TypeRef, site string) string {
	var b strings.Builder
	b.WriteString("decorate")
	writeRefName(&b, impl)
	b.WriteString("_")
	b.WriteString(siteSuffix(site))
	return b.String()
}

func writeRefName(b *strings.Builder, r ndecor.TypeRef) {
	b.WriteString(sanitizeIdent(r.Def().Name()))
	for _, a := range r.Args() {
		writeRefName(b, a)
	}
}

// sanitizeIdent strips everything that cannot appear in a Go identifier
// and upper-cases the start of each surviving word.
func sanitizeIdent(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
