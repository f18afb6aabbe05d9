package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuery_HeaderAndQuestion(t *testing.T) {
	c := NewCodec()
	out, err := c.EncodeQuery(Query{ID: 0xBEEF, Name: "example.com", Type: TypeA, Class: ClassIN}, nil)
	require.NoError(t, err)

	decoded, err := c.DecodeQuery(out)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), decoded.ID)
	assert.Equal(t, "example.com.", decoded.Name)
	assert.Equal(t, TypeA, decoded.Type)
	assert.Equal(t, ClassIN, decoded.Class)
}

func TestEncodeQuery_AppendsClientSubnetOption(t *testing.T) {
	c := NewCodec()
	subnet := &ClientSubnet{Family: 1, SourcePrefix: 24, Address: net.ParseIP("203.0.113.0")}
	out, err := c.EncodeQuery(Query{ID: 1, Name: "example.com", Type: TypeA, Class: ClassIN}, subnet)
	require.NoError(t, err)

	arCount := uint16(out[10])<<8 | uint16(out[11])
	assert.Equal(t, uint16(1), arCount)
}

func TestEncodeDecodeResponse_RoundTrip(t *testing.T) {
	c := NewCodec()
	resp := Response{
		ID:        42,
		QR:        true,
		RD:        true,
		RA:        true,
		RCode:     RCodeNoError,
		Questions: []Query{{Name: "example.com", Type: TypeA, Class: ClassIN}},
		Answers: []Record{
			{
				Name:  "example.com",
				Type:  TypeA,
				Class: ClassIN,
				TTL:   300,
				Data:  AData{Addr: [4]byte{93, 184, 216, 34}},
			},
		},
	}

	out, err := c.EncodeResponse(resp)
	require.NoError(t, err)

	decoded, err := c.DecodeResponse(out, 42)
	require.NoError(t, err)

	require.Len(t, decoded.Answers, 1)
	assert.Equal(t, "example.com.", decoded.Answers[0].Name)
	assert.Equal(t, uint32(300), decoded.Answers[0].TTL)
	a, ok := decoded.Answers[0].Data.(AData)
	require.True(t, ok)
	assert.Equal(t, [4]byte{93, 184, 216, 34}, a.Addr)
}

func TestDecodeResponse_IDMismatchIsProtocolError(t *testing.T) {
	c := NewCodec()
	out, err := c.EncodeResponse(Response{ID: 1, QR: true})
	require.NoError(t, err)

	_, err = c.DecodeResponse(out, 2)
	assert.Error(t, err)
}

func TestDecodeResponse_TooShortIsFormatError(t *testing.T) {
	c := NewCodec()
	_, err := c.DecodeResponse([]byte{0x00, 0x01}, 1)
	assert.Error(t, err)
}

func TestEncodeResponse_CNAMERoundTrip(t *testing.T) {
	c := NewCodec()
	resp := Response{
		ID: 7,
		QR: true,
		Answers: []Record{
			{Name: "www.example.com", Type: TypeCNAME, Class: ClassIN, TTL: 60, Data: NameData{Name: "example.com"}},
		},
	}
	out, err := c.EncodeResponse(resp)
	require.NoError(t, err)

	decoded, err := c.DecodeResponse(out, 7)
	require.NoError(t, err)
	n, ok := decoded.Answers[0].Data.(NameData)
	require.True(t, ok)
	assert.Equal(t, "example.com.", n.Name)
}
