// Package models defines the core domain models for the group ledger.
//
// # Ledger models
//
//   - Group, GroupMember, MemberBalance: a group, its membership order and the
//     per-member net balance. Every membership owns exactly one balance row.
//   - LedgerEntry, Share, Delta: an immutable expense, income or settlement
//     record, the per-person shares it was split into, and the exact balance
//     deltas it applied.
//   - Settlement: the two-party view of a settlement entry.
//
// # Split requests
//
//   - SplitRequest, SplitParticipant: an ad-hoc bill awaiting independent
//     payment from each participant. Split requests never touch group balances.
//   - ReminderTarget: the read model consumed by the reminder worker.
//
// # Design Principles
//
//  1. Amounts are money.Amount (minor units), never floats.
//  2. Enumerations are typed string constants with exhaustive switches.
//  3. Relationships use ID strings instead of pointers.
//  4. Timestamps are Unix seconds; zero means "not set".
package models
