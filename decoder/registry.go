package decoder

// Descriptor identifies a decoder for diagnostic listings.
type Descriptor struct {
	Name         string
	Manufacturer string
}

// Registry holds the ordered decoder list. Decoders are tried most
// specific first; the Generic fallback is always last, so resolution
// never fails.
type Registry struct {
	decoders []Decoder
}

// NewRegistry returns a registry with all supported decoders in
// priority order: name+company-ID matches, then UUID matches, then
// length heuristics, then the fallback.
func NewRegistry() *Registry {
	return &Registry{decoders: []Decoder{
		TPMS16{},
		BR{},
		SYTPMS{},
		Generic{},
	}}
}

// Register inserts a decoder ahead of the fallback, so new sensor
// families can be added without touching existing ones.
func (r *Registry) Register(d Decoder) {
	fallback := r.decoders[len(r.decoders)-1]
	r.decoders = append(r.decoders[:len(r.decoders)-1], d, fallback)
}

// Resolve returns the first decoder whose identification rule matches
// the advertisement. The fallback matches everything, so there is
// always a result.
func (r *Registry) Resolve(adv Advertisement) Decoder {
	for _, d := range r.decoders {
		if d.Matches(adv) {
			return d
		}
	}
	return r.decoders[len(r.decoders)-1]
}

// Decode resolves the advertisement and decodes its primary payload.
// The second return is false only when the payload is too short even
// for the resolved decoder; that is "no reading this round", never an
// error, since the sensor's next advertisement decodes independently.
func (r *Registry) Decode(adv Advertisement) (Reading, bool) {
	return r.Resolve(adv).Decode(adv.PrimaryPayload())
}

// List returns (name, manufacturer) pairs in resolution order. The
// order is stable across calls within one process run.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.decoders))
	for i, d := range r.decoders {
		out[i] = Descriptor{Name: d.Name(), Manufacturer: d.Manufacturer()}
	}
	return out
}
