// Package discovery asks the host's embedded runtime for its own shape.
//
// A [Generator] renders a probe script in the host language, the
// [code.Executor] runs it, and the parser turns the single JSON line the probe
// prints into a [ModuleInfo], [ClassInfo] or [FunctionInfo]. [Service] ties the
// three together and memoizes results in a [cache.Cache].
//
// Probe scripts catch their own failures and report them as an "error"
// payload, so a missing class surfaces as [ErrClassNotFound] rather than as a
// runtime error. Output that cannot be parsed surfaces as
// [ErrIntrospectionFailed] with the raw text preserved in
// [*IntrospectionError].
package discovery
