// Package header provides the implementation of the encoding and decoding of
// transport headers. Header types are byte slices laid out exactly as on the
// wire; the accessors convert between network and host byte order

package header
