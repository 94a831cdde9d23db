/*
Package fasta writes amino acid sequences in FASTA format. It is used to
export the chain sequences of cleaned PDB files, so they can be compared
against the sequences Rosetta reports after loading.

Headers are never wrapped. Sequences are wrapped at 60 columns by default.
*/
package fasta
