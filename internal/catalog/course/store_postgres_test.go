// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestReviewUpsertQuery pins the load-bearing pieces of the review upsert
statement. The lost-update guarantee for concurrent reviews lives entirely
in this one statement, so its shape is asserted here: the prior-stars
read is scoped to the (course, reviewer) pair, the rating accumulator
subtracts the previous stars, and the review count only increments for a
first-time reviewer.
*/
func TestReviewUpsertQuery(t *testing.T) {

	fragments := []struct {
		name string
		want string
	}{
		{"previous_scoped_to_reviewer", "SELECT stars FROM catalog.review WHERE courseid = $1 AND userid = $2"},
		{"conflict_on_reviewer_pair", "ON CONFLICT (courseid, userid) DO UPDATE"},
		{"replacement_updates_stars_and_comment", "SET stars = EXCLUDED.stars, comment = EXCLUDED.comment, updatedat = NOW()"},
		{"rating_delta_subtracts_prior_stars", "rating = c.rating + $3 - COALESCE((SELECT stars FROM previous), 0)"},
		{"count_increments_only_first_review", "numberofreviews = c.numberofreviews + CASE WHEN EXISTS (SELECT 1 FROM previous) THEN 0 ELSE 1 END"},
		{"accumulators_target_the_course_row", "WHERE c.id = $1"},
	}

	for _, fragment := range fragments {
		t.Run(fragment.name, func(t *testing.T) {
			assert.Contains(t, reviewUpsertQuery, fragment.want)
		})
	}

	// One statement, so both accumulator updates commit atomically with
	// the review write.
	assert.NotContains(t, reviewUpsertQuery, ";")
}
