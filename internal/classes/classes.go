// Copyright 2017-2018 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package classes implements the character-class compressor: a single
// sequential pass over every rule's `on` byte set that collapses the
// 256-byte alphabet into the minimal set of equivalence classes no rule
// has yet distinguished.
package classes

import (
	"sort"

	"github.com/db47h/ways/diag"
)

// maxLiveClasses bounds the number of allocated classes (ids 1..N) to
// leave room for the reserved "unallocated" class 0 and the synthetic
// end-of-input class at N+1 within a single byte.
const maxLiveClasses = 254

// Compressor maintains classMap, classUsage, and maxClassId across the
// whole source in source order, per spec.md section 4.3.
type Compressor struct {
	classMap   [256]int
	classUsage map[int]int
	maxClassID int
}

// New returns a Compressor with the initial state: every byte in the
// single unallocated class 0.
func New() *Compressor {
	c := &Compressor{classUsage: map[int]int{0: 256}}
	return c
}

// MaxClassID returns the current highest allocated class id.
func (c *Compressor) MaxClassID() int { return c.maxClassID }

// ClassOf returns the current class id of byte b.
func (c *Compressor) ClassOf(b byte) int { return c.classMap[b] }

// ClassMap returns a copy of the current byte-to-class mapping.
func (c *Compressor) ClassMap() [256]byte {
	var out [256]byte
	for i, v := range c.classMap {
		out[i] = byte(v)
	}
	return out
}

// Process applies one rule's `on` byte set to the compressor's state. The
// caller is responsible for having already rejected duplicate bytes within
// the set (spec.md section 4.3 step 2); Process assumes chars contains no
// duplicates. Bytes are processed in increasing byte order, so the result
// does not depend on the order of bytes within the set. line/col are used
// only to attribute a SemanticError if the class ceiling is exceeded.
func (c *Compressor) Process(chars []byte, line, col int, diags *diag.Collector) bool {
	if len(chars) == 0 {
		return true
	}

	chars = append([]byte(nil), chars...)
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

	relocations := make(map[int]int)

	for _, raw := range chars {
		old := c.classMap[raw]
		newID, ok := relocations[old]
		if !ok {
			if c.maxClassID >= maxLiveClasses {
				diags.Errorf(diag.Semantic, line, col, "more than %d distinct character classes required", maxLiveClasses)
				return false
			}
			c.maxClassID++
			newID = c.maxClassID
			relocations[old] = newID
		}

		c.classUsage[old]--
		c.classUsage[newID]++

		if c.classUsage[old] == 0 {
			c.classUsage[old], c.classUsage[newID] = c.classUsage[newID], c.classUsage[old]
			relocations[old] = old
			if newID != c.maxClassID {
				// newID is now empty but a later fresh id is live: move the
				// highest fresh id into newID's slot so ids stay dense.
				for k, v := range relocations {
					if v == c.maxClassID {
						relocations[k] = newID
						break
					}
				}
				c.classUsage[newID], c.classUsage[c.maxClassID] = c.classUsage[c.maxClassID], 0
			}
			c.maxClassID--
		}
	}

	for _, raw := range chars {
		old := c.classMap[raw]
		c.classMap[raw] = relocations[old]
	}

	return true
}

// ClassCount returns the final class count: allocated classes, the
// reserved unallocated class 0, and the synthetic end-of-input class.
func (c *Compressor) ClassCount() int { return c.maxClassID + 2 }

// EOSClass returns the synthetic end-of-input class id.
func (c *Compressor) EOSClass() int { return c.maxClassID + 1 }

// ClassUsage returns the usage count of class id k, for tests and
// invariant checks.
func (c *Compressor) ClassUsage(k int) int { return c.classUsage[k] }
