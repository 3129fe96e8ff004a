package bk178x

// DataBits is the number of data bits per character.
type DataBits int

const (
	DataBits5 DataBits = 5
	DataBits6 DataBits = 6
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)

func (d DataBits) Int() int {
	return int(d)
}

// Valid reports whether d is between 5 and 8.
func (d DataBits) Valid() bool {
	return d >= DataBits5 && d <= DataBits8
}
