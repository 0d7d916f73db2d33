package ndecor

// This file maps merged chains back onto concrete registrations: given the
// chain set and the registrations discovered in the host configuration,
// decide which registrations need generated composition code and close each
// chain entry with real type arguments.

// Matched pairs a registration with its implementation's decorator chain,
// closed with the registration's own type arguments.  The chain runs
// innermost first, in merge order.
type Matched struct {
	Registration Registration
	Chain        []TypeRef
}

// Match splits registrations into those that need composition code and
// those that pass through untouched.  A registration matches when the
// chain set has a nonempty chain for its implementation's definition;
// otherwise it belongs to the host unchanged and no output unit will exist
// for it.
//
// Match never fails.  A decorator whose generic arity fits neither "no
// arguments" nor "exactly the implementation's arguments" stays open in the
// chain; the generator reports it as a configuration error with the full
// registration context, which a lookup table here does not have.
func Match(chains ChainSet, regs []Registration) (matched []Matched, passthrough []Registration) {
	for _, reg := range regs {
		chain := chains[reg.Implementation.Def()]
		if len(chain) == 0 {
			passthrough = append(passthrough, reg)
			continue
		}
		closed := make([]TypeRef, len(chain))
		for i, deco := range chain {
			closed[i] = closeDecorator(deco, reg.Implementation)
		}
		matched = append(matched, Matched{
			Registration: reg,
			Chain:        closed,
		})
	}
	return matched, passthrough
}

// closeDecorator closes one chain entry against the implementation
// reference from a registration.  Non-generic decorators close bare.  Open
// generic decorators borrow the implementation's type arguments when the
// arity lines up.  Anything else is left open rather than guessed at.
func closeDecorator(deco TypeDef, impl TypeRef) TypeRef {
	args := impl.Args()
	switch deco.Arity() {
	case 0:
		return Ref(deco)
	case len(args):
		return Ref(deco, args...)
	default:
		return Ref(deco)
	}
}
