package model

import "time"

// Account is a registered user.  Points is the loyalty balance: it is
// debited by the points spent on a completed order and credited with the
// computed reward, exactly once per order.  A NULL balance in the database
// is represented by a nil pointer and treated as zero on first settlement.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – login email, unique.
//  Password  – bcrypt hash of the password.
//  FullName  – display name.
//  Phone     – contact number.
//  Points    – loyalty point balance (nullable).
//  CreatedAt – registration timestamp.
type Account struct {
    ID        uint64    // accounts.id
    Email     string    // accounts.email
    Password  string    // accounts.pass
    FullName  string    // accounts.full_name
    Phone     string    // accounts.phone
    Points    *float64  // accounts.points (nullable)
    CreatedAt time.Time // accounts.created_at
}
