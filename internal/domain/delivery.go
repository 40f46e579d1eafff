package domain

// A single input row as received from the caller.
// Coordinates and PackageCount are optional; a nil Coordinates means the
// address still has to be geocoded.
type RawDeliveryRow struct {
	ClientName   string
	Address      string
	Coordinates  *Coordinates
	PackageCount *int
}

// AddressGroup is the set of input rows judged to be the same physical
// delivery point. Address is the exact text of the first occurrence.
// Primary, when set, names the group instead of its first client.
type AddressGroup struct {
	Key          string
	Address      string
	Primary      string
	ClientNames  []string
	PackageCount int
	Coordinates  *Coordinates
}

// PrimaryName returns Primary when set, else the first non-empty client
// name, or "".
func (g AddressGroup) PrimaryName() string {
	if g.Primary != "" {
		return g.Primary
	}
	for _, n := range g.ClientNames {
		if n != "" {
			return n
		}
	}
	return ""
}

// NamedClients returns the client names without empty entries.
func (g AddressGroup) NamedClients() []string {
	out := make([]string, 0, len(g.ClientNames))
	for _, n := range g.ClientNames {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
