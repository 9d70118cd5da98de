// Package texkit compiles LaTeX documents to PDF by orchestrating an
// installed texi2dvi toolchain.
package texkit

// Version is the texkit release version.
const Version = "0.3.0"
