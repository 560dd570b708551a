package mariadb

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Server error numbers the data-access layer reacts to.
const (
	ErDupEntry         = 1062
	ErRowIsReferenced  = 1451
	ErNoReferencedRow  = 1452
	ErRowIsReferenced2 = 1217
	ErNoReferencedRow2 = 1216
)

func errNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicateEntry reports a unique key violation.
func IsDuplicateEntry(err error) bool {
	return errNumber(err) == ErDupEntry
}

// IsRowReferenced reports a delete or update blocked by a child row.
func IsRowReferenced(err error) bool {
	n := errNumber(err)
	return n == ErRowIsReferenced || n == ErRowIsReferenced2
}

// IsMissingParent reports an insert or update pointing at a missing parent row.
func IsMissingParent(err error) bool {
	n := errNumber(err)
	return n == ErNoReferencedRow || n == ErNoReferencedRow2
}
