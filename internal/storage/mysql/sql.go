package mysql

import (
	_ "embed"

	"github.com/Masterminds/squirrel"
)

//go:embed schema.sql
var schemaSQL string

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const insertDocSQL = `
INSERT INTO documents
  (collection, id, doc)
VALUES
  (?, ?, ?)
`

const deleteCollectionSQL = `DELETE FROM documents WHERE collection = ?`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Filter terms compare only string values, so "7" never matches the number 7.
const (
	stringTypeTerm = "JSON_TYPE(JSON_EXTRACT(doc, ?)) = 'STRING'"
	valueTerm      = "JSON_UNQUOTE(JSON_EXTRACT(doc, ?)) = ?"
)

const findDocByIDSQL = `
SELECT doc
FROM documents
WHERE collection = ? AND id = ?
`
