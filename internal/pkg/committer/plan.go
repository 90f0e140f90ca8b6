// Package committer applies collected writes atomically.
//
// Repositories do not write directly. They return mutations, use cases collect
// them into a CommitPlan, and the Committer applies the whole plan in a single
// database transaction:
//
//	// 1. Load and edit the aggregate
//	product, err := repo.GetByID(ctx, productID)
//
//	// 2. Repository returns mutations (doesn't apply them)
//	plan := committer.NewPlan()
//	plan.Add(repo.SaveMut(product))
//	plan.Add(repo.DeleteDiscountsMut(removedIDs))
//
//	// 3. Apply everything atomically
//	return committer.Apply(ctx, plan)
package committer

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Mutation is one write executed inside the commit transaction.
type Mutation func(tx *gorm.DB) error

// CommitPlan collects mutations from multiple sources and applies them
// atomically, in the order they were added.
type CommitPlan struct {
	mutations []Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	db *gorm.DB
}

// NewCommitter creates a new Committer.
func NewCommitter(db *gorm.DB) *Committer {
	return &Committer{db: db}
}

// Apply executes the CommitPlan atomically. The first failing mutation rolls
// back the whole plan.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil // Nothing to commit
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, mut := range plan.Mutations() {
			if err := mut(tx); err != nil {
				return fmt.Errorf("mutation %d: %w", idx, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}

	return nil
}
