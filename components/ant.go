package components

import "fmt"

// Kind is the ant caste. Behavior only differs in goal selection.
type Kind uint8

const (
	KindScout Kind = iota
	KindWorker
)

// NumKinds is the number of declared kinds.
const NumKinds = 2

// Kinds lists every declared kind in ordinal order.
var Kinds = [NumKinds]Kind{KindScout, KindWorker}

func (k Kind) String() string {
	switch k {
	case KindScout:
		return "scout"
	case KindWorker:
		return "worker"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a config name to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown ant kind %q", name)
}

// Ant identifies an entity as an ant.
type Ant struct {
	Kind Kind
}

// Satiation is an ant's energy reserve. Reaching zero is fatal.
type Satiation struct {
	Store
}

// HeldFood is the food an ant carries toward the nest.
type HeldFood struct {
	Store
}
