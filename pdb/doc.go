/*
Package pdb provides support for reading, editing and writing the coordinate
section of PDB files. A PDB file is read into an Entry, whose residues are
kept in the order they were found in the file. That ordered list of residues
is what the rest of pdbclean calls the residue map.

ATOM and HETATM records are parsed in full (names, alternate locations,
insertion codes, coordinates, occupancy, temperature factor, element and
charge). All other records before the first coordinate record are kept in
Entry.Header and all other records after the last one are kept in
Entry.Footer, so that they can be written back out unchanged. TER, MODEL,
ENDMDL and END records are regenerated when writing.

PDBx/mmCIF files may also be read (see ReadCIF), but entries are always
written in PDB format.

The editing operations (Rename, RemoveHetatm, RemoveWaters, RemoveAlternates
and SetOccupancy) mutate an Entry in place. An Entry is not safe for
concurrent use.
*/
package pdb
