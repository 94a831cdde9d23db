/*
Package clean prepares PDB files for Rosetta. It reads a structural file,
applies a fixed sequence of optional transforms, writes the cleaned file and
reports residue codes that Rosetta does not recognize or does not read by
default.

The transforms are applied in this order, each one only when enabled in the
Config:

 1. rename residues and atoms (and normalize water names)
 2. remove HETATM residues
 3. remove waters
 4. collapse alternate locations and renumber chains with insertions
 5. set every occupancy to 1.0

A Session holds the residue codes found while checking files. Codes found in
every file cleaned by the same Session accumulate, so a batch of files gives
one report. Use a new Session for each batch. A Session is not safe for
concurrent use.

Files are written directly to their final location. If cleaning fails part
way through writing, a partial file may be left behind.
*/
package clean
