package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"ria-board/src/domain"
	"ria-board/src/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGetAll(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "items", "b", []byte(`{"v":2}`)))
	require.NoError(t, mem.Set(ctx, "items", "a", []byte(`{"v":1}`)))

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// ID昇順で安定して返る
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)

	empty, err := mem.GetAll(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_SetCopiesData(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	data := []byte(`{"v":1}`)
	require.NoError(t, mem.Set(ctx, "items", "a", data))
	data[2] = 'x' // 呼び出し側のバッファ変更が漏れないこと

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(records[0].Data))
}

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "items", "a", []byte(`{"name":"first","count":1}`)))
	require.NoError(t, mem.Update(ctx, "items", "a", []byte(`{"count":2}`)))

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(records[0].Data, &got))
	assert.Equal(t, "first", got["name"])
	assert.EqualValues(t, 2, got["count"])
}

func TestMemoryStore_UpdateAbsentRecordFails(t *testing.T) {
	mem := store.NewMemoryStore()

	err := mem.Update(context.Background(), "items", "missing", []byte(`{"v":1}`))
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "items", "a", []byte(`{}`)))
	require.NoError(t, mem.Delete(ctx, "items", "a"))
	require.NoError(t, mem.Delete(ctx, "items", "a"))
	require.NoError(t, mem.Delete(ctx, "other", "never-existed"))

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStore_BatchWrite(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "items", "keep", []byte(`{"name":"keep","flag":false}`)))
	require.NoError(t, mem.Set(ctx, "items", "gone", []byte(`{}`)))

	err := mem.BatchWrite(ctx, "items", []domain.BatchOp{
		{ID: "new", Kind: domain.BatchSet, Payload: []byte(`{"name":"new"}`)},
		{ID: "keep", Kind: domain.BatchUpdate, Payload: []byte(`{"flag":true}`)},
		{ID: "gone", Kind: domain.BatchDelete},
	})
	require.NoError(t, err)

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)
	require.Len(t, records, 2)

	var keep map[string]interface{}
	require.NoError(t, json.Unmarshal(records[0].Data, &keep))
	assert.Equal(t, "keep", keep["name"])
	assert.Equal(t, true, keep["flag"])
}

func TestMemoryStore_BatchWriteIsAtomic(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "items", "a", []byte(`{"v":1}`)))

	// 存在しないレコードへのupdateを含むバッチは何も適用しない
	err := mem.BatchWrite(ctx, "items", []domain.BatchOp{
		{ID: "b", Kind: domain.BatchSet, Payload: []byte(`{"v":2}`)},
		{ID: "missing", Kind: domain.BatchUpdate, Payload: []byte(`{"v":3}`)},
	})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	records, err := mem.GetAll(ctx, "items")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestMemoryStore_FailureHook(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "items", "a", []byte(`{}`)))

	hookErr := assert.AnError
	mem.FailureHook = func(op, collection string) error {
		if op == "getAll" && collection == "items" {
			return hookErr
		}
		return nil
	}

	_, err := mem.GetAll(ctx, "items")
	assert.ErrorIs(t, err, hookErr)

	// 対象外のコレクションは影響を受けない
	_, err = mem.GetAll(ctx, "other")
	assert.NoError(t, err)
}
