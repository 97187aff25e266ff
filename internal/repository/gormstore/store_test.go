package gormstore

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var _ repository.Store = (*Store)(nil)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "noop"))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, "get client %s", "c1"), repository.ErrNotFound)

	cause := errors.New("connection reset")
	err := translate(cause, "get client %s", "c1")
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "get client c1")
}

func TestAffected(t *testing.T) {
	assert.ErrorIs(t, affected(&gorm.DB{}, "delete driver %s", "d9"), repository.ErrNotFound)
	assert.NoError(t, affected(&gorm.DB{RowsAffected: 1}, "delete driver %s", "d1"))

	cause := errors.New("lock timeout")
	assert.ErrorIs(t, affected(&gorm.DB{Error: cause}, "delete driver %s", "d1"), cause)
}
