package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Row is the generic attribute map a record is stored as. Values are the
// table store's variant type: string, number, boolean or string set.
type Row = map[string]types.AttributeValue

var (
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("wrong type")
)

// readString reads a required string attribute.
func readString(row Row, key string) (string, error) {
	attr, ok := row[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrWrongType, key)
	}
	return s.Value, nil
}

// readStringOptional returns the empty string when the attribute is
// absent or not a string.
func readStringOptional(row Row, key string) string {
	if s, ok := row[key].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// readBool reads a required boolean attribute.
func readBool(row Row, key string) (bool, error) {
	attr, ok := row[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	b, ok := attr.(*types.AttributeValueMemberBOOL)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a boolean", ErrWrongType, key)
	}
	return b.Value, nil
}

// readUintOptional returns nil when the attribute is absent, not a
// number, or not parseable as an unsigned decimal.
func readUintOptional(row Row, key string) *uint64 {
	n, ok := row[key].(*types.AttributeValueMemberN)
	if !ok {
		return nil
	}
	v, err := strconv.ParseUint(n.Value, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// readStringSet returns nil when the attribute is absent or not a
// string set.
func readStringSet(row Row, key string) []string {
	if ss, ok := row[key].(*types.AttributeValueMemberSS); ok {
		return ss.Value
	}
	return nil
}

// EncodeRow writes the member as a row. Absent optional fields are
// omitted entirely; the subscription set is omitted when empty because
// the table store rejects empty string sets.
func (m *Member) EncodeRow() Row {
	row := Row{
		"name":  &types.AttributeValueMemberS{Value: m.Name},
		"email": &types.AttributeValueMemberS{Value: m.Email},
	}
	if m.ID != "" {
		row["id"] = &types.AttributeValueMemberS{Value: m.ID}
	}
	if m.Address != "" {
		row["address"] = &types.AttributeValueMemberS{Value: m.Address}
	}
	if m.Mobile != nil {
		row["mobile"] = &types.AttributeValueMemberN{Value: strconv.FormatUint(*m.Mobile, 10)}
	}
	if len(m.Subscriptions) > 0 {
		row["subscriptions"] = &types.AttributeValueMemberSS{Value: m.Subscriptions}
	}
	return row
}

// DecodeRow fills the member from a row. id, name and email are
// required; anything else decodes best-effort.
func (m *Member) DecodeRow(row Row) error {
	id, err := readString(row, "id")
	if err != nil {
		return err
	}
	name, err := readString(row, "name")
	if err != nil {
		return err
	}
	email, err := readString(row, "email")
	if err != nil {
		return err
	}
	m.ID = id
	m.Name = name
	m.Email = email
	m.Address = readStringOptional(row, "address")
	m.Mobile = readUintOptional(row, "mobile")
	m.Subscriptions = readStringSet(row, "subscriptions")
	return nil
}

func (m *Member) Key() string      { return m.ID }
func (m *Member) SetKey(id string) { m.ID = id }

func (t *Topic) EncodeRow() Row {
	row := Row{
		"name":     &types.AttributeValueMemberS{Value: t.Name},
		"endpoint": &types.AttributeValueMemberS{Value: t.Endpoint},
		"default":  &types.AttributeValueMemberBOOL{Value: t.Default},
	}
	if t.ID != "" {
		row["id"] = &types.AttributeValueMemberS{Value: t.ID}
	}
	return row
}

func (t *Topic) DecodeRow(row Row) error {
	id, err := readString(row, "id")
	if err != nil {
		return err
	}
	name, err := readString(row, "name")
	if err != nil {
		return err
	}
	endpoint, err := readString(row, "endpoint")
	if err != nil {
		return err
	}
	def, err := readBool(row, "default")
	if err != nil {
		return err
	}
	t.ID = id
	t.Name = name
	t.Endpoint = endpoint
	t.Default = def
	return nil
}

func (t *Topic) Key() string      { return t.ID }
func (t *Topic) SetKey(id string) { t.ID = id }
