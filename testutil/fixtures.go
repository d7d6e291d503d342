package testutil

import "time"

// Test user information used across all test helpers.
const (
	// TestAuthor is the default author name for test commits.
	TestAuthor = "Test User"

	// TestEmail is the default email for test commits.
	TestEmail = "test@example.com"
)

// DefaultBranch is the branch HEAD points at in a new test repository.
const DefaultBranch = "main"

// Epoch is the timestamp of the first commit in a test repository. Each
// following commit is one minute later, so hashes are reproducible and no two
// commits collide.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Test tag names.
const (
	// TestTagName is a standard test tag name.
	TestTagName = "v1.0.0"

	// TestTagName2 is a second test tag name.
	TestTagName2 = "v1.1.0"

	// TestTagMessage is a standard tag message.
	TestTagMessage = "Release version 1.0.0"
)
