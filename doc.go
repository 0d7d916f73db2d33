// Obligatory // comment

/*

Package ndecor resolves decorator chains for dependency-injection wiring.
Hosts declare which decorators apply to which service implementations,
ndecor merges those declarations into one ordered decorator chain per
implementation, and the companion package ngen emits the composition
functions that apply the chains at construction time.  No runtime
reflection is involved: the output is plain Go source targeting the host's
container API.

Type identity

Types are identified structurally rather than through the Go type system,
because the declarations usually describe a host program rather than the
running process.  A TypeDef identifies a type definition: module, package
path, enclosing types, name, and generic arity.  A TypeRef is a definition
closed with concrete type arguments.  Build them directly:

	repo := ndecor.Def("billing", "example.com/billing/repos", "Repo").Generic(1)
	customer := ndecor.Ref(ndecor.Def("billing", "example.com/billing", "Customer"))
	closed := ndecor.Ref(repo, customer) // repos.Repo[billing.Customer]

or from reflection when the types exist in-process:

	def := ndecor.DefFor[Repo[Customer]]()
	ref := ndecor.RefFor[Repo[Customer]]()

Definitions are comparable values.  Two closed instantiations of the same
generic type share one definition, which is what lets one declaration
cover every instantiation.

Declaring decorators

Declarations are facts: decorate this implementation with that decorator
at this order.  Facts accumulate into an immutable Store, in any order.

	store := ndecor.NewStore(
		ndecor.Decorate(sqlRepo, loggingDeco, 1),
		ndecor.BlanketDecorate(sqlRepo, cachingDeco, 2),
		ndecor.SkipAll{Implementation: memRepo},
		ndecor.Exclude{Implementation: sqlRepo, Decorator: auditDeco},
	)

Decorate records a declaration aimed at one implementation.
BlanketDecorate records a declaration that arrived through a blanket rule;
the store keeps the provenance because specific declarations win over
blanket ones when they collide.  SkipAll opts an implementation out of
blanket decoration entirely.  Exclude removes one decorator from one
implementation no matter where it was declared.  A declaration can be
switched off but left in place with Disabled().

Merging

	chains := ndecor.Merge(store)

Merge resolves each implementation independently.  Blanket rows are
dropped for implementations that skip them, disabled rows are dropped,
duplicate rows for one decorator collapse to the most specific row,
excluded decorators are removed, and the survivors are ordered by Order
with ties broken in favor of per-implementation rows and then by name.
The first chain entry wraps the implementation directly and the last
entry is the outermost wrapper.  Implementations whose chains come up
empty are absent from the result.

Merge is a pure function of the store: it never fails, and feeding the
same facts in any order produces an identical result.  Store.Fingerprint
identifies store contents for callers that want to cache merge results.

Matching registrations

Chains attach to concrete service registrations with Match:

	matched, passthrough := ndecor.Match(chains, registrations)

A registration carries the service and implementation references, the
lifetime, the shape of the original registration call, and an opaque site
token naming the call site.  Registrations whose implementations have no
chain pass through untouched.  For the others, each chain entry is closed
with the registration's own type arguments, so one chain for a generic
implementation serves every instantiation.

The ngen package turns matched registrations into generated composition
functions, one per site token.

Explaining decisions

When a decorator unexpectedly does or does not apply, Explain returns the
merge decision log for one implementation: each candidate, each drop with
its reason, and the resulting chain.

	fmt.Println(ndecor.Explain(store, sqlRepo))

Displaying errors

Code generation collects configuration errors instead of stopping at the
first one.  The collected errors are reasonable one-liners, but the full
context is available through the DetailedError function.

	if err := result.Err(); err != nil {
		log.Fatal(ndecor.DetailedError(err))
	}

*/
package ndecor
