// Package models defines the core domain models for tripsplit.
//
// # Models
//
//   - User: a registered participant (nickname, avatar, optional linked chat)
//   - Trip: a group of participants who share bills
//   - Bill: money owed to one creditor, split into Debts
//   - Debt: one participant's obligation on a Bill and its payment status
//
// # Design Principles
//
// 1. Relationships use ID strings instead of pointers.
// 2. Money is decimal.Decimal, never float64.
// 3. Status-like fields are closed string enumerations. Unknown literals are
//    rejected by the Parse* functions at the storage and API boundaries.
// 4. Bill.IsCompleted is derived from Debts and is never set independently;
//    see calculator.IsCompleted.
package models
