package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonUpdateMarshalJSON(t *testing.T) {
	topic := "Дроби"

	// Обычный PATCH: только заданные поля, series_id отсутствует
	data, err := json.Marshal(LessonUpdate{Topic: &topic})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"Дроби"}`, string(data))

	// Открепление от серии: series_id отправляется явным null
	data, err = json.Marshal(LessonUpdate{Topic: &topic, ClearSeries: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"Дроби","series_id":null}`, string(data))
}

func TestLessonUpdateIsEmpty(t *testing.T) {
	assert.True(t, LessonUpdate{}.IsEmpty())

	topic := ""
	assert.False(t, LessonUpdate{Topic: &topic}.IsEmpty())
	assert.False(t, LessonUpdate{ClearSeries: true}.IsEmpty())
}
