package configmanager

// notSetType is the type of the NotSet sentinel. It is a distinct type so
// that falsy real values (false, 0, "") remain distinguishable from "no
// value provided".
type notSetType struct{}

// NotSet marks the absence of a value. It is returned by Default for items
// without a default, and can be passed as a fallback to behave as if no
// fallback was supplied.
var NotSet = notSetType{}

func (notSetType) String() string { return "<NotSet>" }

// IsNotSet reports whether v is the NotSet sentinel.
func IsNotSet(v any) bool {
	_, ok := v.(notSetType)
	return ok
}
