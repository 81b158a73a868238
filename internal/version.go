package internal

// Version is the current blogtrans version
const Version = "0.3.0"
