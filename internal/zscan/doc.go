// Package zscan turns LabVIEW Z-scan measurement files into ordered
// distance/voltage samples and a smoothed voltage series.
//
// Two text layouts are accepted. The structured layout carries a header
// block terminated by the ***End_of_Header*** marker (written twice by the
// instrument) followed by one tab-separated distance row and one
// tab-separated voltage row. The delimited layout holds one
// "distance,voltage" pair per line.
//
// [Process] is the single entry point. It has no package-level state and is
// safe to call concurrently on different documents.
package zscan
