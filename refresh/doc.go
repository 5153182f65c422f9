// Package refresh keeps hot keys of a cache region fresh by reloading them at a fixed interval.
package refresh
