// Package store implements the generic list/update/delete protocol over
// typed records kept in a key-value table store.
package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sinln/newsletter/internal/logging"
)

// API is the slice of the table-store client the engine needs.
type API interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Record is the capability a stored type must provide: a bidirectional
// row mapping plus access to its key.
type Record[T any] interface {
	*T
	EncodeRow() map[string]types.AttributeValue
	DecodeRow(map[string]types.AttributeValue) error
	Key() string
	SetKey(string)
}

// Store is a CRUD engine bound to one table and one record type.
// It owns id assignment and the return-previous-value semantics of
// Update and Delete.
type Store[T any, PT Record[T]] struct {
	client API
	table  string
	log    logging.Logger

	// injectable for deterministic id tests
	now        func() time.Time
	randUint32 func() uint32
}

func New[T any, PT Record[T]](client API, table string, log logging.Logger) *Store[T, PT] {
	return &Store[T, PT]{
		client:     client,
		table:      table,
		log:        log,
		now:        time.Now,
		randUint32: rand.Uint32,
	}
}

// newID builds a fresh record id: UTC timestamp prefix, second
// resolution, plus a random decimal suffix. Collisions within the same
// second are possible and not detected; this matches the original
// scheme and is acceptable for human-rate CRUD.
func (s *Store[T, PT]) newID() string {
	return s.now().UTC().Format("2006-01-02-15:04:05-") +
		strconv.FormatUint(uint64(s.randUint32()), 10)
}

// List scans the whole table. Rows that fail to decode are logged and
// dropped; only a failed scan request fails the call.
func (s *Store[T, PT]) List(ctx context.Context) ([]PT, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.table, err)
	}

	records := make([]PT, 0, len(out.Items))
	for _, row := range out.Items {
		rec := PT(new(T))
		if err := rec.DecodeRow(row); err != nil {
			s.log.Warn(ctx, "dropping undecodable row", "table", s.table, "error", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Update writes the record with full-overwrite semantics and returns the
// value previously stored under its id, if any. A record without an id
// gets a fresh one assigned before the write. There is no concurrency
// check; the last writer wins.
func (s *Store[T, PT]) Update(ctx context.Context, rec PT) (PT, error) {
	if rec.Key() == "" {
		rec.SetKey(s.newID())
	}

	out, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:    aws.String(s.table),
		Item:         rec.EncodeRow(),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", s.table, err)
	}

	return s.decodePrevious(ctx, out.Attributes), nil
}

// Delete removes the row for id and returns the previous value if it
// existed and decoded. Deleting an unknown id returns nil, nil.
func (s *Store[T, PT]) Delete(ctx context.Context, id string) (PT, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", s.table, err)
	}

	return s.decodePrevious(ctx, out.Attributes), nil
}

// decodePrevious decodes a returned old row best-effort: an empty or
// undecodable row degrades to "no previous value".
func (s *Store[T, PT]) decodePrevious(ctx context.Context, row map[string]types.AttributeValue) PT {
	if len(row) == 0 {
		return nil
	}
	prev := PT(new(T))
	if err := prev.DecodeRow(row); err != nil {
		s.log.Warn(ctx, "previous value undecodable", "table", s.table, "error", err.Error())
		return nil
	}
	return prev
}
