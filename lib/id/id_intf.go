// Package id supplies the id generators the randomized test and
// benchmark workloads draw their keys from.
package id

// Gen generates a number id.
type Gen func() uint64

type Generator interface {
	Number() uint64
	Str() string
}

var (
	_ Generator = (*genDelegator)(nil)
)

type genDelegator struct {
	number Gen
	str    func() string
}

func (id *genDelegator) Number() uint64 { return id.number() }
func (id *genDelegator) Str() string    { return id.str() }
