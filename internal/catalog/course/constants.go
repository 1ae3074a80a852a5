// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

// # Business Rules

const (
	// TitleMaxLength bounds course titles.
	TitleMaxLength = 200

	// CommentMaxLength bounds review comments.
	CommentMaxLength = 2000

	// StarsMin and StarsMax bound the review rating scale.
	StarsMin = 1
	StarsMax = 5

	// DefaultCurrency applies when course input omits one.
	DefaultCurrency = "usd"
)
