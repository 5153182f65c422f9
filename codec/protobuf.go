package codec

import (
	"google.golang.org/protobuf/proto"
)

// Protobuf is a Codec for generated protobuf messages.
// Construct with NewProtobuf, passing a constructor of an empty message.
type Protobuf[T proto.Message] struct {
	newMessage func() T
}

// NewProtobuf returns a Protobuf codec that decodes into messages created by newMessage,
// for example func() *pb.Brand { return &pb.Brand{} }.
func NewProtobuf[T proto.Message](newMessage func() T) Protobuf[T] {
	return Protobuf[T]{newMessage: newMessage}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.newMessage()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}
