package protocol

import "fmt"

// ErrorCode identifies an error sent to the client.
type ErrorCode uint16

const (
	ErrUnknown         ErrorCode = 0x0000
	ErrInvalidFrame    ErrorCode = 0x0001 // Malformed frame
	ErrInvalidEvent    ErrorCode = 0x0002 // Malformed or unknown event
	ErrMessageTooLarge ErrorCode = 0x0003 // Message exceeded the read limit
	ErrServerError     ErrorCode = 0x0004 // Internal server error
	ErrRateLimited     ErrorCode = 0x0005 // Too many events
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrMessageTooLarge:
		return "MessageTooLarge"
	case ErrServerError:
		return "ServerError"
	case ErrRateLimited:
		return "RateLimited"
	default:
		return fmt.Sprintf("ErrorCode(0x%04x)", uint16(ec))
	}
}

// ErrorMessage is sent in a FrameError. A fatal error is followed by the
// server closing the connection.
//
// Wire format:
//
//	[Code:uint16][Message:string][Fatal:bool]
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

// NewError creates a non-fatal error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError creates a fatal error message.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	return fmt.Sprintf("%s: %s", em.Code, em.Message)
}

// EncodeErrorMessage encodes an error message payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error message payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg, Fatal: fatal}, nil
}
