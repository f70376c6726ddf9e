package domain

import "errors"

// Sentinel errors for every client-facing failure of the portfolio core.
// Call sites wrap them with the offending symbol, bucket or date.
var (
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidDirection    = errors.New("direction must be LONG or SHORT")
	ErrPositionTooLarge    = errors.New("order would overflow the position size")
	ErrSymbolNotFound      = errors.New("no market data for symbol")
	ErrDateNotFound        = errors.New("no market data for date")
	ErrNoSuchHolding       = errors.New("user does not hold specified symbol")
	ErrBucketAlreadyExists = errors.New("bucket already exists")
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrEmptyBucketSet      = errors.New("the bucket set must be non-empty")
)

// ErrorClass groups errors by how a transport should report them
type ErrorClass string

const (
	ClassInvalidArgument ErrorClass = "INVALID_ARGUMENT"
	ClassNotFound        ErrorClass = "NOT_FOUND"
	ClassInternal        ErrorClass = "INTERNAL"
)

// ErrorKind is the stable, client-visible identity of an error
type ErrorKind struct {
	Name  string
	Class ErrorClass
}

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidQuantity, ErrorKind{Name: "Order:InvalidQuantity", Class: ClassInvalidArgument}},
	{ErrInvalidDirection, ErrorKind{Name: "Order:InvalidDirection", Class: ClassInvalidArgument}},
	{ErrPositionTooLarge, ErrorKind{Name: "Order:InvalidQuantity", Class: ClassInvalidArgument}},
	{ErrSymbolNotFound, ErrorKind{Name: "Data:SymbolNotFound", Class: ClassNotFound}},
	{ErrDateNotFound, ErrorKind{Name: "Date:DateNotFound", Class: ClassNotFound}},
	{ErrNoSuchHolding, ErrorKind{Name: "Holding:NoSuchHolding", Class: ClassNotFound}},
	{ErrBucketAlreadyExists, ErrorKind{Name: "Bucket:BucketCreationFailed", Class: ClassInvalidArgument}},
	{ErrBucketNotFound, ErrorKind{Name: "Bucket:BucketNotFound", Class: ClassNotFound}},
	{ErrEmptyBucketSet, ErrorKind{Name: "Bucket:BucketSetEmpty", Class: ClassInvalidArgument}},
}

// KindOf classifies err against the domain sentinels.
// Unknown errors are reported as Default:Internal.
func KindOf(err error) ErrorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ErrorKind{Name: "Default:Internal", Class: ClassInternal}
}
