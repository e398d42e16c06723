// Package operations implements the functions combining and transforming
// tensor maps: Join, Multiply, Solve, DropBlocks, Slice and the equality
// checks.
//
// Operations never modify their inputs. Every structural check runs before
// numeric work starts, so an operation either returns a complete new map or
// an *Error and no result. Blocks are processed concurrently, one task per
// key, and the result keeps the key order of the input.
//
// Example:
//
//	joined, err := operations.Join([]*tensormap.TensorMap{a, b}, operations.Properties)
//	if err != nil {
//	    return err
//	}
//	scaled, err := operations.Multiply(joined, operations.ScalarOperand{Value: 0.5})
package operations
