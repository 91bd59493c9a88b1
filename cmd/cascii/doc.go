// Command cascii converts videos and images into ASCII character frames and
// renders those frames back into videos.
package main
