// Package binpress shrinks distributed executables into self-extracting
// containers.
//
// Compress reads an executable, compresses it with the target platform's
// codec and writes a container — either appended to a pre-built loader stub
// (a self-extracting binary) or as a standalone data file. Update repacks the
// container embedded in an existing stub without growing it. Extract is the
// binflate operation: it inflates a container back to the original executable
// without running it.
//
// At run time the stub side of the system (package loader) locates its own
// container, consults the shared content-addressed cache under
// ~/.socket/_dlx (package dlx), and replaces the stub process with the
// original program.
package binpress
