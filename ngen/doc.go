// Stuff

/*

Package ngen generates the composition functions that apply merged
decorator chains to service registrations.

The input is the matched registrations produced by ndecor.Match.  For
each one, the generator emits a self-contained Go function that replaces
the original registration call: it registers the undressed implementation
under a derived internal key, then registers the public service as a
factory that resolves the base through the internal key and wraps it with
each decorator in chain order.  The generated function takes the same
parameters as the original call (the registrar, plus the key, builder, or
instance value its shape dictates) so that the host can redirect the call
site without rewriting arguments.

Decorator constructors are described by Models.  Without one, the
generator assumes New<Name> in the decorator's package taking exactly the
wrapped value.  The container API the generated source calls into is
described by a Dialect, so one generator serves hosts whose containers
spell their verbs differently.

Configuration problems are collected into the Result rather than aborting
the batch.  A bad registration produces ConfigErrors and no unit; every
other registration still emits.

*/
package ngen
