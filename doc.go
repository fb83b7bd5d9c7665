// Package brr converts PCM audio into the Bit Rate Reduction (BRR) format
// used by the Super Nintendo Entertainment System's audio DSP, and
// validates, decodes, and packages BRR samples.
//
// The package is organized around three tightly coupled subsystems: an
// exhaustive brute-force ADPCM encoder (Encoder), a bit-accurate decoder
// emulating the SNES DSP's decode path (Decode), and a binary block/
// container model (Sample, SuiteSample) for the raw, loop-headered, and
// BRR Suite Sample (.brs) file formats.
//
// WAV file I/O, multichannel mix-down, pre-encoding waveform filters, and
// real-time playback are out of scope; see the pcmsource subpackage for a
// minimal adapter that feeds PCM to and from WAV files.
package brr
