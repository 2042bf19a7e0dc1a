// Package models defines the core domain models for Tripledger.
//
// # Money representation
//
// All amounts are integer minor units (cents, pence, ...) in the currency
// named next to them. Floating point is never used for money; the only
// non-integer values are FX rates and percentage share values, which are
// carried as decimals and collapse back to integer minor units at a single
// rounding point (see internal/calculator).
//
// # Model groups
//
//   - Trip, User: who is travelling together and in which base currency
//     the trip settles.
//   - Expense, Share: one payment fronted by a member and how it is split.
//   - UserBalance: derived net position per member (never persisted).
//   - Settlement, SettlementSummary: proposed and completed transfers that
//     zero the group out, and the aggregate view handed to callers.
//
// # Design principles
//
//  1. Relationships use ID strings, not pointers, to avoid circular
//     references between aggregates.
//  2. Derived data (balances, transfer plans) is recomputed from expense
//     rows on demand and never cached in the models.
//  3. Settled history is immutable: a Settlement that reached the settled
//     status is never edited or regenerated.
package models
