package db

// Params assembles the positional parameter sequence of a statement. Values
// are bound in the exact order the setters are called, which must match the
// order the query compiler emitted its placeholders.
type Params struct {
	values []interface{}
}

func NewParams() *Params {
	return &Params{values: make([]interface{}, 0, 8)}
}

func (p *Params) SetLong(v int64) *Params {
	p.values = append(p.values, v)
	return p
}

func (p *Params) SetInt(v int) *Params {
	p.values = append(p.values, v)
	return p
}

func (p *Params) SetString(v string) *Params {
	p.values = append(p.values, v)
	return p
}

func (p *Params) SetDouble(v float64) *Params {
	p.values = append(p.values, v)
	return p
}

func (p *Params) SetBool(v bool) *Params {
	p.values = append(p.values, v)
	return p
}

func (p *Params) SetLongs(vs []int64) *Params {
	for _, v := range vs {
		p.values = append(p.values, v)
	}
	return p
}

func (p *Params) SetStrings(vs []string) *Params {
	for _, v := range vs {
		p.values = append(p.values, v)
	}
	return p
}

func (p *Params) SetNull() *Params {
	p.values = append(p.values, nil)
	return p
}

// Add appends pre-assembled values, e.g. the sequence the filter compiler
// produced.
func (p *Params) Add(values ...interface{}) *Params {
	p.values = append(p.values, values...)
	return p
}

// Values returns the assembled sequence.
func (p *Params) Values() []interface{} {
	return p.values
}
