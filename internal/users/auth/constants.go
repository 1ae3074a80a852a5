// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// PasswordMinLength is the minimum character count for account passwords.
	PasswordMinLength = 8

	// NameMaxLength caps display names to keep profile payloads sane.
	NameMaxLength = 100
)
