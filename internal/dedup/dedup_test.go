package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/dedup"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func TestFingerprint_StripsVolatileTokens(t *testing.T) {
	a := dedup.Fingerprint(model.CategoryDatabase, "connection refused to host 10054 request 0xdeadbeef id 4f8a9b2c1d3e5f67")
	b := dedup.Fingerprint(model.CategoryDatabase, "connection refused to host 99999 request 0xcafebabe id aabbccdd11223344")

	assert.Equal(t, a, b, "volatile numeric and hex tokens must not affect the fingerprint")
}

func TestFingerprint_IsStableAcrossTokenOrder(t *testing.T) {
	a := dedup.Fingerprint(model.CategoryNetwork, "timeout waiting for upstream")
	b := dedup.Fingerprint(model.CategoryNetwork, "upstream waiting for timeout")

	assert.Equal(t, a, b)
}

func TestFingerprint_DropsShortTokens(t *testing.T) {
	fp := dedup.Fingerprint(model.CategoryAPI, "db is up")
	assert.Equal(t, "api:", fp)
}

func TestSimilarity_SymmetricAndDeterministic(t *testing.T) {
	a := dedup.Fingerprint(model.CategoryDatabase, "database connection refused on checkout")
	b := dedup.Fingerprint(model.CategoryDatabase, "database connection refused on billing")

	simAB := dedup.Similarity(a, b)
	simBA := dedup.Similarity(b, a)
	assert.Equal(t, simAB, simBA)

	for i := 0; i < 5; i++ {
		assert.Equal(t, simAB, dedup.Similarity(a, b))
	}
}

func TestSimilarity_DifferentCategoriesNeverMatch(t *testing.T) {
	a := dedup.Fingerprint(model.CategoryDatabase, "connection refused")
	b := dedup.Fingerprint(model.CategoryNetwork, "connection refused")

	assert.Zero(t, dedup.Similarity(a, b))
}

func TestSimilarity_IdenticalMessagesAreOne(t *testing.T) {
	a := dedup.Fingerprint(model.CategoryDatabase, "deadlock detected on orders table")
	assert.InDelta(t, 1.0, dedup.Similarity(a, a), 0.001)
}

func TestCheck_FlagsDuplicateAtOrAboveThreshold(t *testing.T) {
	detector := dedup.New(0.8)

	prior := []model.IssueRecord{
		{
			Number:      41,
			Fingerprint: dedup.Fingerprint(model.CategoryNetwork, "timeout calling payment gateway"),
		},
		{
			Number:      42,
			Fingerprint: dedup.Fingerprint(model.CategoryDatabase, "database connection refused on checkout"),
		},
	}

	analysis := &model.BugAnalysis{Category: model.CategoryDatabase}
	record := &model.LogRecord{Message: "database connection refused on checkout"}

	verdict := detector.Check(analysis, record, prior)
	require.True(t, verdict.IsDuplicate)
	require.NotNil(t, verdict.MatchedWith)
	assert.Equal(t, 42, verdict.MatchedWith.Number)
	assert.InDelta(t, 1.0, verdict.Similarity, 0.001)
}

func TestCheck_BelowThresholdIsNotDuplicate(t *testing.T) {
	detector := dedup.New(0.8)

	prior := []model.IssueRecord{
		{
			Number:      7,
			Fingerprint: dedup.Fingerprint(model.CategoryDatabase, "database connection refused on checkout service node"),
		},
	}

	analysis := &model.BugAnalysis{Category: model.CategoryDatabase}
	record := &model.LogRecord{Message: "database deadlock detected while updating inventory rows"}

	verdict := detector.Check(analysis, record, prior)
	assert.False(t, verdict.IsDuplicate)
	assert.Nil(t, verdict.MatchedWith)
}

func TestCheck_NoPriorIssues(t *testing.T) {
	detector := dedup.New(0.8)

	verdict := detector.Check(&model.BugAnalysis{Category: model.CategoryAPI}, &model.LogRecord{Message: "panic in handler"}, nil)
	assert.False(t, verdict.IsDuplicate)
	assert.Zero(t, verdict.Similarity)
}
