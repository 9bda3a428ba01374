// Package model assembles the symbolic Gibbs energy of one phase from a
// parameter database.
//
// The energy is the sum of five contributions, built in this order:
//
//	reference   endmember energies weighted by site-fraction products
//	ideal       configurational entropy of every mixing sublattice
//	excess      Redlich-Kister interaction polynomials (Muggianu for ternaries)
//	magnetic    Inden-Hillert-Jarl ordering term, when the phase declares it
//	ordering    order-disorder correction, for the ordered member of a pair
//
// Every leaf of the result is a site fraction (see package variables), the
// temperature T, or a number. Construction either succeeds completely or
// returns the first error; no partial model is returned.
package model
