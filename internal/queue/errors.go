package queue

import "errors"

var (
	// ErrStoreUnreachable reports that the database could not be opened or probed.
	ErrStoreUnreachable = errors.New("store unreachable")
	// ErrStoreLocked reports that another process holds the database lock.
	ErrStoreLocked = errors.New("store locked by another process")
	// ErrSchemaCreationFailed reports that the schema could not be verified or created.
	ErrSchemaCreationFailed = errors.New("schema creation failed")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrPrepareFailed reports that a statement could not be prepared.
	ErrPrepareFailed = errors.New("prepare failed")
	// ErrNotOpened is returned by operations on a store that is not listening.
	ErrNotOpened = errors.New("store not opened")
	// ErrAlreadyOpened is returned by Listen on a store that is already listening.
	ErrAlreadyOpened = errors.New("store already opened")
	// ErrWriteFailed reports a failed insert. The message was not persisted.
	ErrWriteFailed = errors.New("write failed")
	// ErrReadFailed reports a failed select or a payload that could not be decoded.
	ErrReadFailed = errors.New("read failed")
	// ErrDeleteFailed reports that a delivered row could not be removed.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrEncodeFailed reports that the payload encoder returned an error.
	ErrEncodeFailed = errors.New("encode failed")
	// ErrInvalidTopic is returned for topics that are empty after normalization.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrChannelClosed is returned by operations on a detached channel.
	ErrChannelClosed = errors.New("channel closed")
)

// ErrorKind classifies a store error for callers that map failures to exit
// codes or log hints. Unknown errors classify as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStoreLocked):
		return "locked"
	case errors.Is(err, ErrStoreUnreachable):
		return "unreachable"
	case errors.Is(err, ErrSchemaCreationFailed), errors.Is(err, ErrSchemaMismatch):
		return "schema"
	case errors.Is(err, ErrPrepareFailed):
		return "prepare"
	case errors.Is(err, ErrNotOpened), errors.Is(err, ErrAlreadyOpened), errors.Is(err, ErrChannelClosed):
		return "state"
	case errors.Is(err, ErrInvalidTopic), errors.Is(err, ErrEncodeFailed):
		return "validation"
	case errors.Is(err, ErrWriteFailed), errors.Is(err, ErrReadFailed), errors.Is(err, ErrDeleteFailed):
		return "io"
	default:
		return "internal"
	}
}

// Retryable reports whether repeating the failed operation may succeed
// without intervention.
func Retryable(err error) bool {
	switch ErrorKind(err) {
	case "locked", "io":
		return true
	default:
		return false
	}
}
