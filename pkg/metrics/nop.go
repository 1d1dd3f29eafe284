package metrics

// Nop discards every measurement. Used when metrics are disabled and in
// tests.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (*Nop) RecordDispatch(string)            {}
func (*Nop) RecordToolInvocation(string)      {}
func (*Nop) RecordOracleCall(string, float64) {}
func (*Nop) RecordCacheLookup(string, bool)   {}
func (*Nop) RecordError(string)               {}
