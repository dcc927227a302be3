package pattern

import (
	"github.com/sarchlab/membist/bist/checker"
	"github.com/sarchlab/membist/bist/generator"
)

// MakeGeneratorBuilder returns a generator builder that writes the pattern.
func MakeGeneratorBuilder(p Pattern) generator.Builder {
	return generator.MakeBuilder().WithStream(NewStream(p))
}

// MakeCheckerBuilder returns a checker builder that reads the pattern back.
func MakeCheckerBuilder(p Pattern) checker.Builder {
	return checker.MakeBuilder().WithStream(NewStream(p))
}
