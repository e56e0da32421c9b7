/*
Package orm provides an easy to use db wrapper

Every extension stores its models in a bucket. A bucket owns a key prefix in
the database so that different models never collide. A model is any
protobuf message that can validate itself.
*/
package orm
